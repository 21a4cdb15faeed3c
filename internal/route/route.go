// Package route assigns issues to the team responsible for fixing them.
package route

import "github.com/nao1215/seoaudit/internal/model"

// Route returns the team owning the issue's category.
// Unknown categories go to model.DefaultTeam.
func Route(issue model.Issue) model.Team {
	return model.TeamFor(issue.Category)
}

// Assign returns a copy of issue with its Team set.
func Assign(issue model.Issue) model.Issue {
	issue.Team = Route(issue)
	return issue
}
