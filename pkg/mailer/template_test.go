package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		metadata map[string]any
		body     string
	}{
		{
			name:     "with frontmatter",
			content:  "---\nSubject: You got an anonymous message\n---\n{{.Message}}\n",
			metadata: map[string]any{"Subject": "You got an anonymous message"},
			body:     "{{.Message}}\n",
		},
		{
			name:     "without frontmatter",
			content:  "Just a body.",
			metadata: map[string]any{},
			body:     "Just a body.",
		},
		{
			name:     "empty frontmatter",
			content:  "---\n---\nBody content here.",
			metadata: map[string]any{},
			body:     "Body content here.",
		},
		{
			name:     "windows line endings",
			content:  "---\r\nSubject: Hi\r\n---\r\nBody",
			metadata: map[string]any{"Subject": "Hi"},
			body:     "Body",
		},
		{
			name:     "numeric metadata",
			content:  "---\nPriority: 3\n---\n",
			metadata: map[string]any{"Priority": 3},
			body:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tmpl, err := ParseTemplate([]byte(tt.content))
			require.NoError(t, err)
			require.Equal(t, tt.metadata, tmpl.Metadata)
			require.Equal(t, tt.body, tmpl.Body)
		})
	}
}

func TestParseTemplate_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"missing closing delimiter": "---\nSubject: Test\nBody",
		"nothing after opening":     "---\n",
		"invalid yaml":              "---\nSubject: [unclosed\n---\nBody",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseTemplate([]byte(content))
			require.ErrorIs(t, err, ErrInvalidFrontmatter)
		})
	}
}
