// Package container wires the services of both binaries with samber/do.
package container

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/oops"
)

// ErrMissingOption is returned when a required setting is empty.
var ErrMissingOption = errors.New("missing required option")

// Backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options configures the HTTP server. Every field is also read from SERVICE_<NAME>.
type Options struct {
	Port             int           `default:"8888"             help:"Port to listen on"                                                   short:"p"`
	BaseURL          string        `                           help:"Public base URL of short links, defaults to http://localhost:<port>"`
	CodeLength       int           `default:"8"                help:"Length of generated short codes"                                     short:"c"`
	Backend          string        `default:"redis"            help:"Storage and messaging backend: redis or memory"`
	RedisAddr        string        `default:"localhost:6379"   help:"Redis address, host:port or redis:// URL"                            short:"r"`
	RedisPoolSize    int           `default:"10"               help:"Maximum number of pooled store connections"`
	RedisPoolTimeout time.Duration `default:"5s"               help:"How long a request waits for a free store connection"`
	CryptKey         string        `                           help:"Token key, 32 raw bytes or 64 hex characters"`
	TokenTTL         time.Duration `default:"1h"               help:"Lifetime of issued session tokens"`
	BcryptCost       int           `default:"10"               help:"bcrypt cost for new credentials"`
	LogFormat        string        `default:"console"          help:"Log format: console or json"`
	ReviewTopic      string        `default:"review.submitted" help:"Topic review events are published to"`
}

// PublicBaseURL returns BaseURL, or the local address when it is unset.
func (o *Options) PublicBaseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// WorkerOptions configures the publishing worker.
type WorkerOptions struct {
	ConsumerGroup       string
	MastodonHost        string
	MastodonAccessToken string
	// MastodonDebug posts statuses with private visibility.
	MastodonDebug bool
	// DatabaseURL enables the Postgres publication log when set.
	DatabaseURL string
}

// Validate reports the first missing required worker setting.
func (o *WorkerOptions) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"MASTODON_HOST", o.MastodonHost},
		{"MASTODON_ACCESS_TOKEN", o.MastodonAccessToken},
	}

	for _, r := range required {
		if r.value == "" {
			return oops.Code("CONFIG_MISSING").With("option", r.name).Wrap(ErrMissingOption)
		}
	}

	return nil
}
