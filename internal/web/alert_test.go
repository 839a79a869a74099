package web

import (
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/indicators/internal/core"
)

func TestErrorAlert(t *testing.T) {
	tests := []struct {
		name    string
		msg     core.UserMessage
		detail  string
		want    []string
		notWant []string
	}{
		{
			name:   "message with action and detail",
			msg:    core.UserMessage{Code: "ING003", Message: "Unknown city", Action: "Check the names"},
			detail: `unresolved entity names in "003 - Reddito.csv": Atlantide`,
			want: []string{
				`<div class="alert alert-error" role="alert" data-code="ING003">`,
				`<p class="alert-message">Unknown city</p>`,
				`<p class="alert-detail">unresolved entity names in &#34;003 - Reddito.csv&#34;: Atlantide</p>`,
				`<p class="alert-action">Check the names</p>`,
				`<span class="alert-code">Code: ING003</span></div>`,
			},
		},
		{
			name:    "optional paragraphs omitted",
			msg:     core.UserMessage{Code: "ERR000", Message: "Something went wrong"},
			want:    []string{`<p class="alert-message">Something went wrong</p>`},
			notWant: []string{"alert-detail", "alert-action"},
		},
		{
			name:    "markup is escaped",
			msg:     core.UserMessage{Code: `"><b>`, Message: "<script>alert(1)</script>"},
			detail:  "a & b",
			want:    []string{`data-code="&#34;&gt;&lt;b&gt;"`, "&lt;script&gt;", "a &amp; b"},
			notWant: []string{"<script>", "<b>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			if err := errorAlert(tt.msg, tt.detail).Render(context.Background(), &b); err != nil {
				t.Fatalf("Render: %v", err)
			}
			html := b.String()
			for _, s := range tt.want {
				if !strings.Contains(html, s) {
					t.Errorf("missing %q in %s", s, html)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(html, s) {
					t.Errorf("unexpected %q in %s", s, html)
				}
			}
		})
	}
}
