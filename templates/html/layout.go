package templates

import (
	"fmt"
	"html"
)

// renderLayout wraps already-escaped body HTML in the branded email shell. title is
// escaped here.
func renderLayout(title, bodyHTML string) string {
	safeTitle := html.EscapeString(title)

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f5f7; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: linear-gradient(135deg, #1e3a8a 0%%, #2563eb 100%%); padding: 36px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 36px 30px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .amount { font-size: 32px; font-weight: 700; color: #1e3a8a; margin: 12px 0; }
    table.summary { width: 100%%; border-collapse: collapse; margin-top: 16px; }
    table.summary td { padding: 6px 0; border-bottom: 1px solid #e5e7eb; }
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
      <p>You are receiving this email because you listed a vehicle for auction.</p>
    </div>
  </div>
</body>
</html>`, safeTitle, safeTitle, bodyHTML)
}
