package auth

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/RahulEdward/pinegeniev2-sub011/config"
)

// SendVerificationEmail mails the signup verification link. The link hits
// this API directly (GET /verify) which then redirects to the frontend.
func SendVerificationEmail(to string, token string) error {
	base := os.Getenv("API_BASE_URL")
	if base == "" {
		base = "http://localhost:" + config.PORT
	}
	link := fmt.Sprintf("%s/verify?token=%s", base, token)

	body := "Welcome to Pine Genie!\n\n" +
		"Confirm your email to start building strategies:\n\n" + link
	return sendMail(to, "Verify Your Pine Genie Account", body)
}

// SendPasswordResetEmail mails a reset link pointing at the frontend.
func SendPasswordResetEmail(to string, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", config.APP_URL, token)
	body := "We received a request to reset your Pine Genie password.\n\n" +
		"Reset it here (the link expires in one hour):\n\n" + link + "\n\n" +
		"If you didn't ask for this, you can ignore this email."
	return sendMail(to, "Reset Your Pine Genie Password", body)
}

func sendMail(to, subject, body string) error {
	from := os.Getenv("SMTP_FROM")
	password := os.Getenv("SMTP_PASSWORD")
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")

	msg := []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", from, password, host)
	if err := smtp.SendMail(host+":"+port, auth, from, []string{to}, msg); err != nil {
		fmt.Println("❌ SMTP error:", err)
		return err
	}
	return nil
}
