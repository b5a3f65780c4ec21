// Package timeouts holds the deadlines handlers and background jobs put on
// store, file, and mail calls. Values are set once at startup from config
// and read on every request.
package timeouts

import (
	"sync/atomic"
	"time"
)

// Defaults apply until Configure overrides them.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second  // single-document reads and writes
	DefaultUpload = 60 * time.Second // streaming a file into storage
	DefaultMail   = 20 * time.Second // one SMTP dial-and-send
)

var ping, short, upload, mail atomic.Int64

func init() { Reset() }

// Ping bounds a health-check round trip to MongoDB.
func Ping() time.Duration { return time.Duration(ping.Load()) }

// Short bounds a single store call.
func Short() time.Duration { return time.Duration(short.Load()) }

// Upload bounds writing one uploaded file to storage.
func Upload() time.Duration { return time.Duration(upload.Load()) }

// Mail bounds one email send.
func Mail() time.Duration { return time.Duration(mail.Load()) }

// Config carries overrides. Zero or negative fields leave the current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Upload time.Duration
	Mail   time.Duration
}

// Configure applies cfg.
func Configure(cfg Config) {
	for _, o := range []struct {
		dst *atomic.Int64
		d   time.Duration
	}{
		{&ping, cfg.Ping},
		{&short, cfg.Short},
		{&upload, cfg.Upload},
		{&mail, cfg.Mail},
	} {
		if o.d > 0 {
			o.dst.Store(int64(o.d))
		}
	}
}

// Reset restores the defaults.
func Reset() {
	ping.Store(int64(DefaultPing))
	short.Store(int64(DefaultShort))
	upload.Store(int64(DefaultUpload))
	mail.Store(int64(DefaultMail))
}
