package templates

import (
	"fmt"
	"html"
)

// RenderConfirmationEmail generates the branded HTML for the registration
// confirmation email.
func RenderConfirmationEmail(email string) string {
	safeEmail := html.EscapeString(email)

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>VIP Registration Confirmed</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #0a0a0f; }
    .container { max-width: 600px; margin: 0 auto; background-color: #12121f; }
    .header { background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 40px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 40px 30px; color: #e5e7eb; line-height: 1.6; font-size: 15px; }
    .footer { padding: 30px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid rgba(255,255,255,0.1); }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>VIP Registration Confirmed</h1>
    </div>
    <div class="content">
      <p>Your registration for <strong>%s</strong> is confirmed.</p>
      <p>You now have VIP access. Keep an eye on this inbox for launch details.</p>
    </div>
    <div class="footer">
      <p>&copy; Moca VIP Access</p>
    </div>
  </div>
</body>
</html>`, safeEmail)
}
