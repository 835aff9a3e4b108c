package mail

import "fmt"

func WelcomeEmail(username, email, tempPassword, loginURL string) (subject, body string) {
	subject = "Welcome to the Node Rewards Program"
	body = fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Your node rewards account has been created.</p>
<p>Sign in with:</p>
<ul>
<li>Email: <b>%s</b></li>
<li>Temporary password: <b>%s</b></li>
</ul>
<p>You will be asked to change the password on first login.</p>
<p><a href="%s">Sign in</a></p>
</body></html>`, username, email, tempPassword, loginURL)

	return subject, body
}

func PasswordResetEmail(username, resetLink string) (subject, body string) {
	subject = "Reset your password"
	body = fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>A password reset was requested for your account. The link below is valid
for one hour.</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not request this, you can ignore this email.</p>
</body></html>`, username, resetLink)

	return subject, body
}

func RedemptionSuccessEmail(username string, tokens int, txHash, explorerLink string) (subject, body string) {
	subject = "Your token redemption is complete"
	body = fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Your redemption of <b>%d</b> tokens has been settled on chain.</p>
<p>Transaction hash: <code>%s</code></p>
<p><a href="%s">View on explorer</a></p>
</body></html>`, username, tokens, txHash, explorerLink)

	return subject, body
}

func RedemptionFailureEmail(username string, tokens int) (subject, body string) {
	subject = "Your token redemption could not be settled"
	body = fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Your redemption of <b>%d</b> tokens failed to settle on chain. Our team
has been notified and will follow up.</p>
</body></html>`, username, tokens)

	return subject, body
}
