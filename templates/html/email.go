package templates

import (
	"fmt"
	"html"
	"strings"
)

// RenderEmail wraps plain text in the Wheelhub mail layout. The body is HTML-escaped and
// newlines become <br> tags.
func RenderEmail(subject, bodyContent string) string {
	escaped := html.EscapeString(bodyContent)
	htmlBody := strings.ReplaceAll(escaped, "\n", "<br>")
	safeSubject := html.EscapeString(subject)

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: Arial, Helvetica, sans-serif; margin: 0; padding: 0; background-color: #f4f5f7; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background-color: #1f2937; padding: 32px 24px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; }
    .content { padding: 32px 24px; color: #111827; line-height: 1.6; font-size: 15px; }
    .footer { padding: 24px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      %s
    </div>
    <div class="footer">
      <p>&copy; Wheelhub</p>
    </div>
  </div>
</body>
</html>`, safeSubject, safeSubject, htmlBody)
}

// VerificationRequest describes a government id waiting for admin review
type VerificationRequest struct {
	UserID      string
	Name        string
	Email       string
	IDType      string
	DocumentURL string
}

// RenderVerificationRequest returns the subject, plain text and HTML of the admin
// notification sent when a user uploads a government id
func RenderVerificationRequest(v VerificationRequest) (subject, plain, htmlContent string) {
	subject = fmt.Sprintf("ID verification requested by %s", v.Name)
	plain = fmt.Sprintf(`%s (%s) uploaded a %s for verification.

User id: %s
Document: %s

Review the document and mark the user as verified once it checks out.`,
		v.Name, v.Email, v.IDType, v.UserID, v.DocumentURL)
	return subject, plain, RenderEmail(subject, plain)
}
