package admission

import (
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/arvidfm/codeshare/internal/infrastructure/sign"
	"github.com/arvidfm/codeshare/internal/testutil"
)

var hrefPattern = regexp.MustCompile(`href="([^"]+)"`)

func TestDispatcherLinksVerify(t *testing.T) {
	t.Parallel()

	signer := sign.New([]byte("test-secret"))
	mail := testutil.NewMockMailer()
	d := NewDispatcher(mail, signer, "http://localhost:5173", time.Hour)

	if err := d.NotifyAccessRequest("abc123", "guest@y.com", "owner@x.com"); err != nil {
		t.Fatalf("notify: %v", err)
	}

	sent := mail.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(sent))
	}

	links := hrefPattern.FindAllStringSubmatch(sent[0].Body, -1)
	if len(links) != 2 {
		t.Fatalf("expected 2 decision links, got %d", len(links))
	}

	seen := map[string]bool{}
	for _, m := range links {
		u, err := url.Parse(m[1])
		if err != nil {
			t.Fatalf("unparseable link %q: %v", m[1], err)
		}
		q := u.Query()
		if q.Get("roomId") != "abc123" || q.Get("email") != "guest@y.com" {
			t.Errorf("link misscoped: %s", m[1])
		}

		approve := q.Get("approve") == "true"
		seen[q.Get("approve")] = true

		payload := sign.DecisionPayload("abc123", "guest@y.com", approve)
		if err := signer.Verify(payload, q.Get("token")); err != nil {
			t.Errorf("link token does not verify: %v", err)
		}
	}

	if !seen["true"] || !seen["false"] {
		t.Error("expected one approve and one deny link")
	}
}
