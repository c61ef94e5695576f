package mail

import (
	"bytes"
	"html/template"
)

var (
	resetTmpl = template.Must(template.New("password_reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Password reset</h2>
  <p>Hello, {{.Name}}!</p>
  <p>We received a request to reset the password for your account.
  If you did not request this, you can ignore this email.</p>
  <p><a href="{{.Link}}" style="display:inline-block;background:#4CAF50;color:#fff;padding:10px 20px;border-radius:5px;text-decoration:none;">Reset password</a></p>
  <p>The link is valid for 24 hours.</p>
  <p style="font-size:12px;color:#777;">&copy; {{.Year}} Altera School Platform. This is an automated message.</p>
</body>
</html>`))

	resetDoneTmpl = template.Must(template.New("password_reset_done").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Password changed</h2>
  <p>Hello, {{.Name}}!</p>
  <p>The password for your account was just changed. If this was not you,
  contact the school administration immediately.</p>
  <p style="font-size:12px;color:#777;">&copy; {{.Year}} Altera School Platform. This is an automated message.</p>
</body>
</html>`))

	credentialsTmpl = template.Must(template.New("credentials").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Welcome to Altera</h2>
  <p>Hello, {{.Name}}!</p>
  <p>An account has been created for you. Your sign-in credentials:</p>
  <ul>
    <li>Email: <strong>{{.Email}}</strong></li>
    <li>Temporary password: <strong>{{.Password}}</strong></li>
  </ul>
  <p>Please change the password after your first sign-in.</p>
  <p style="font-size:12px;color:#777;">&copy; {{.Year}} Altera School Platform. This is an automated message.</p>
</body>
</html>`))
)

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
