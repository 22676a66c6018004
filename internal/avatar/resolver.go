package avatar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/TobiSchelling/cfpsync/internal/resource"
)

const maxAvatarBytes = 10 << 20

// ErrUnrecognized is returned when downloaded bytes are not a known image kind.
var ErrUnrecognized = errors.New("unrecognized image signature")

// ErrNoURL is returned for speakers without an avatar link.
var ErrNoURL = errors.New("no avatar url")

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.code, http.StatusText(e.code))
}

// Resolver downloads avatars and stores them under their detected extension.
type Resolver struct {
	placeholderURL string
	followHTML     bool
	client         *http.Client
}

// NewResolver creates a Resolver. When followHTML is set, an avatar link that
// points at an HTML profile page is resolved to the page's lead image.
func NewResolver(placeholderURL string, timeout time.Duration, followHTML bool) *Resolver {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Resolver{
		placeholderURL: placeholderURL,
		followHTML:     followHTML,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Result describes one resolved avatar.
type Result struct {
	SpeakerID   string
	Path        string
	Kind        Kind
	Placeholder bool
	// Cause is the original failure when the placeholder was used.
	Cause error
	Err   error
}

// Resolve downloads rawURL to stem plus the detected extension. Any failure
// is logged and the placeholder image is fetched in its place, once. A
// placeholder failure is returned.
func (r *Resolver) Resolve(ctx context.Context, rawURL, stem string) (*Result, error) {
	path, kind, err := r.fetch(ctx, rawURL, stem)
	if err == nil {
		return &Result{Path: path, Kind: kind}, nil
	}

	log.Printf("Avatar %q failed: %v; using placeholder", rawURL, err)
	if r.placeholderURL == "" {
		return nil, fmt.Errorf("no placeholder configured: %w", err)
	}

	path, kind, perr := r.fetch(ctx, r.placeholderURL, stem)
	if perr != nil {
		return nil, fmt.Errorf("placeholder %s: %w", r.placeholderURL, perr)
	}
	return &Result{Path: path, Kind: kind, Placeholder: true, Cause: err}, nil
}

// ResolveAll resolves the avatar of every primary speaker into dir. Failures
// are recorded per speaker and never stop the batch.
func (r *Resolver) ResolveAll(ctx context.Context, speakers []resource.Speaker, dir string) ([]Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating avatar directory: %w", err)
	}

	var results []Result
	// A speaker with several proposals maps to one stem; the first
	// resolution wins and later ones reuse it.
	byStem := make(map[string]Result)
	for _, s := range resource.Primary(speakers) {
		id := s.ID
		if s.Email != nil && *s.Email != "" {
			id = *s.Email
		}
		stem := filepath.Join(dir, FileStem(id))
		if prev, ok := byStem[stem]; ok {
			prev.SpeakerID = s.ID
			results = append(results, prev)
			continue
		}

		var link string
		if s.Avatar != nil {
			link = *s.Avatar
		}

		res, err := r.Resolve(ctx, link, stem)
		if err != nil {
			log.Printf("Avatar for %s unresolved: %v", s.ID, err)
			res = &Result{Err: err}
		}
		res.SpeakerID = s.ID
		byStem[stem] = *res
		results = append(results, *res)
	}
	return results, nil
}

// fetch downloads to stem, classifies the bytes and renames the file to
// carry the right extension. On failure no file is left behind.
func (r *Resolver) fetch(ctx context.Context, rawURL, stem string) (path string, kind Kind, err error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", Unknown, ErrNoURL
	}

	defer func() {
		if err != nil {
			os.Remove(stem)
		}
	}()

	body, err := r.download(ctx, rawURL)
	if err != nil {
		return "", Unknown, err
	}
	if err := os.WriteFile(stem, body, 0o644); err != nil {
		return "", Unknown, fmt.Errorf("writing %s: %w", stem, err)
	}

	kind = Detect(body)
	if kind == Unknown && r.followHTML && isHTML(body) {
		body, err = r.followLeadImage(ctx, rawURL, body)
		if err != nil {
			return "", Unknown, err
		}
		if err := os.WriteFile(stem, body, 0o644); err != nil {
			return "", Unknown, fmt.Errorf("writing %s: %w", stem, err)
		}
		kind = Detect(body)
	}
	if kind == Unknown {
		return "", Unknown, ErrUnrecognized
	}

	path = stem + "." + kind.Ext()
	if err := removeStale(stem, path); err != nil {
		return "", Unknown, err
	}
	if err := os.Rename(stem, path); err != nil {
		return "", Unknown, fmt.Errorf("renaming %s: %w", stem, err)
	}
	return path, kind, nil
}

func (r *Resolver) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "cfpsync/1.0 (avatar fetcher)")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &httpError{code: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes))
}

// followLeadImage downloads the lead image of an HTML profile page. Only one
// hop is taken.
func (r *Resolver) followLeadImage(ctx context.Context, pageURL string, page []byte) ([]byte, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	article, err := readability.FromReader(bytes.NewReader(page), base)
	if err != nil {
		return nil, fmt.Errorf("parsing profile page: %w", err)
	}
	if article.Image == "" {
		return nil, ErrUnrecognized
	}
	img, err := base.Parse(article.Image)
	if err != nil {
		return nil, fmt.Errorf("lead image url: %w", err)
	}
	return r.download(ctx, img.String())
}

// removeStale deletes earlier downloads of stem saved under another image
// extension, so a stem never has more than one avatar file.
func removeStale(stem, keep string) error {
	for _, k := range []Kind{PNG, JPEG, GIF, WebP, BMP, TIFF} {
		old := stem + "." + k.Ext()
		if old == keep {
			continue
		}
		if err := os.Remove(old); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing stale %s: %w", old, err)
		}
	}
	return nil
}

func isHTML(b []byte) bool {
	return strings.HasPrefix(http.DetectContentType(b), "text/html")
}
