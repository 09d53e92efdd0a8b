// Package version reports the liftkit build.
//
// Version, commit, branch and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/liftkit/version.Version=1.0.0 \
//	    -X github.com/kbukum/liftkit/version.BuildTime=2026-10-17T09:00:00Z" ./cmd/liftkit
//
// Unset values fall back to the VCS stamps of the Go build info.
package version
