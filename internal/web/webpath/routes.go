package webpath

const (
	Api = "/api"

	ApiRegister       = Api + "/register"
	ApiLogin          = Api + "/login"
	ApiMe             = Api + "/me"
	ApiChangePassword = Api + "/change-password"
	ApiDeleteAccount  = Api + "/delete-account"
	ApiForgotPassword = Api + "/forgot-password"
	ApiResetPassword  = Api + "/reset-password"
	ApiCheckout       = Api + "/checkout"
)
