package notification

import (
	"context"
	"fmt"
)

// EmailSender delivers transactional mail out of band. Implementations
// must be safe for concurrent use.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

type SendEmailParams struct {
	SendTo   string
	Subject  string
	BodyHTML string
	Tag      string
}

// OTPEmail renders the verification-code message sent on registration and
// resend.
func OTPEmail(to, username, code string) SendEmailParams {
	return SendEmailParams{
		SendTo:  to,
		Subject: "Your Soundwave verification code",
		Tag:     "otp",
		BodyHTML: fmt.Sprintf(`<p>Hi %s,</p>
<p>Use this code to verify your account:</p>
<h2 style="letter-spacing:4px">%s</h2>
<p>The code expires in 15 minutes. If you didn't sign up, ignore this message.</p>`,
			username, code),
	}
}

// WelcomeEmail renders the post-verification greeting.
func WelcomeEmail(to, username string) SendEmailParams {
	return SendEmailParams{
		SendTo:  to,
		Subject: "Welcome to Soundwave!",
		Tag:     "welcome",
		BodyHTML: fmt.Sprintf(`<p>Welcome %s!</p>
<p>Your account is verified. You can now upload tracks, build playlists and share music.</p>`,
			username),
	}
}
