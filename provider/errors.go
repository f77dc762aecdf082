package provider

import "errors"

var (
	// ErrNoArticles is returned by a tier that answered but carried no articles.
	ErrNoArticles = errors.New("upstream returned no articles")

	// ErrUnexpectedStatus is returned by a tier that answered with a non-200 status.
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
)
