// Package pagespeed fetches Core Web Vitals from the PageSpeed Insights v5 API.
//
// Real-user (field) data from the Chrome UX Report is used when the API has
// it for the page. Otherwise the Lighthouse lab measurement is used, and
// CoreWebVitals.FieldData is false.
package pagespeed
