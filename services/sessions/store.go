// Package sessions persists per-session upstream cookie jars. the
// scraper core only requires this key-value contract, what backs it
// is the caller's choice.
package sessions

import "context"

type Session struct {
	Id      string
	Cookies map[string]string
}

type Store interface {
	// GetSession returns nil when the id is unknown
	GetSession(ctx context.Context, id string) (*Session, error)
	CreateSession(ctx context.Context, id string, cookies map[string]string) error
	// UpdateSessionCookies replaces the stored jar wholesale, merging
	// is the caller's responsibility
	UpdateSessionCookies(ctx context.Context, id string, cookies map[string]string) error
}
