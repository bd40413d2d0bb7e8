package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderEmailEscapes(t *testing.T) {
	out := RenderEmail("Hi <b>", "line one\n<script>x</script>")

	assert.Contains(t, out, "<title>Hi &lt;b&gt;</title>")
	assert.Contains(t, out, "line one<br>&lt;script&gt;x&lt;/script&gt;")
	assert.False(t, strings.Contains(out, "<script>"))
}

func TestRenderVerificationRequest(t *testing.T) {
	subject, plain, html := RenderVerificationRequest(VerificationRequest{
		UserID:      "64b7f0c2a1b2c3d4e5f60718",
		Name:        "Alice",
		Email:       "alice@example.com",
		IDType:      "Driver's License",
		DocumentURL: "/uploads/governmentIds/1.png",
	})

	assert.Equal(t, "ID verification requested by Alice", subject)
	assert.Contains(t, plain, "alice@example.com")
	assert.Contains(t, plain, "/uploads/governmentIds/1.png")
	assert.Contains(t, html, "Driver&#39;s License")
}
