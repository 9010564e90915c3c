// Package urls collects the external links shown by the application:
// government scheme portals and help pages.
//
// Keeping them in one place lets a link change without hunting through
// screens.
//
//	fmt.Printf("Apply online at %s\n", urls.PMKisan)
package urls
