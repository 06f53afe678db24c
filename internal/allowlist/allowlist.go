package allowlist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Peeetk/shop-backend/account/users"
	mapset "github.com/deckarep/golang-set/v2"
)

// Provider supplies the set of emails permitted to self-register. The set
// is fetched per registration attempt, so a provider never has to cache.
type Provider interface {
	ListActiveEmails(ctx context.Context) (mapset.Set[string], error)
}

// HTTP fetches the exported customer ledger from a remote endpoint that
// returns a JSON array of email addresses.
type HTTP struct {
	url    string
	client *http.Client
}

func NewHTTP(url string, timeout time.Duration) *HTTP {
	return &HTTP{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *HTTP) ListActiveEmails(ctx context.Context) (mapset.Set[string], error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ledger returned status %d", resp.StatusCode)
	}
	var emails []string
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return nil, err
	}
	return toSet(emails), nil
}

// File reads the ledger export from disk on every call. Staleness window
// is a single request.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (p *File) ListActiveEmails(_ context.Context) (mapset.Set[string], error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, err
	}
	var emails []string
	if err := json.Unmarshal(data, &emails); err != nil {
		return nil, err
	}
	return toSet(emails), nil
}

// Static holds a fixed set of emails. Used in tests.
type Static struct {
	set mapset.Set[string]
}

func NewStatic(emails ...string) *Static {
	return &Static{set: toSet(emails)}
}

func (p *Static) ListActiveEmails(_ context.Context) (mapset.Set[string], error) {
	return p.set, nil
}

func toSet(emails []string) mapset.Set[string] {
	set := mapset.NewSet[string]()
	for _, email := range emails {
		set.Add(users.NormalizeEmail(email))
	}
	return set
}
