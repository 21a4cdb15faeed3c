// Package classify maps page URLs to business page types.
//
// Classification is pure pattern matching on the URL path. Rules are tried
// in order and the first match wins; URLs that match nothing, including
// URLs that cannot be parsed, are PageTypeOther. New patterns are added
// with WithRule or from the classifier section of the configuration file.
package classify
