// Package jira exports audit results as Jira tickets.
//
// BuildTickets turns an audit report into one epic and one task per team
// with issues. Client creates them through the REST API v3 with basic
// authentication, linking each task to the epic. Descriptions are written
// in Markdown and sent as Atlassian documents.
//
//	set := jira.BuildTickets(report)
//	client := jira.New(baseURL, user, token, "SEO")
//	result, err := client.CreateAll(ctx, set)
package jira
