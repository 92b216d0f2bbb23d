package storage

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/radif/assetstore/internal/objectstore"
)

// Serve returns middleware that streams the object at PathPrefix+r.URL.Path
// from the bucket, forwarding upstream headers. When the object cannot be
// opened the request is handed, unchanged, to the fallback's Serve(next).
func (s *Storage) Serve() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := s.serveKey(r.URL.Path)

			obj, err := s.open(r, key)
			if err != nil {
				level := log.Ctx(ctx).Warn()
				if errors.Is(err, objectstore.ErrNotFound) {
					level = log.Ctx(ctx).Debug()
				}
				level.Err(err).Str("key", key).Msg("serve: falling back to local")
				serveFallbacksTotal.Inc()
				s.fallback.Serve()(next).ServeHTTP(w, r)
				return
			}
			defer obj.Body.Close()

			header := w.Header()
			for k, v := range obj.Header {
				header[k] = v
			}
			w.WriteHeader(http.StatusOK)

			if r.Method == http.MethodHead {
				return
			}
			// Headers are already sent, so a broken stream cannot fall back.
			if _, err := io.Copy(w, obj.Body); err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("serve: stream interrupted")
			}
		})
	}
}

// serveKey appends the request path to PathPrefix verbatim. Dot segments are
// not resolved, so a request cannot address keys outside the prefix.
func (s *Storage) serveKey(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return stripLeadingSlash(strings.TrimSuffix(s.cfg.PathPrefix, "/") + p)
}

func (s *Storage) open(r *http.Request, key string) (*objectstore.Object, error) {
	client, err := s.factory.NewClient(r.Context())
	if err != nil {
		return nil, err
	}
	return client.GetObject(r.Context(), s.cfg.Bucket, key)
}
