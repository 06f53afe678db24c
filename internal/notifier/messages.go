package notifier

import "fmt"

func WelcomeMessage(name string) (subject, body string) {
	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + name
	}
	return "Welcome to the store",
		fmt.Sprintf("%s,\n\nYour account has been created. You can now sign in with your email address.\n", greeting)
}

func TemporaryPasswordMessage(tempPassword string) (subject, body string) {
	return "Your temporary password",
		fmt.Sprintf("Your password has been reset.\n\nTemporary password: %s\n\nPlease sign in and change it as soon as possible.\n", tempPassword)
}

func ResetLinkMessage(link string) (subject, body string) {
	return "Password reset",
		fmt.Sprintf("A password reset was requested for your account.\n\nFollow this link to choose a new password:\n%s\n\nThe link expires shortly. If you did not request a reset, ignore this message.\n", link)
}
