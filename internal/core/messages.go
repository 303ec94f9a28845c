package core

// Fixed texts the assistant shows without consulting any model.
const (
	WelcomeMessage      = "Hello! I'm here to assist with mobile advice. If you want to know system info, just type 'sysinfo'."
	EmptyInputMessage   = "Please enter a valid question."
	TooLongMessage      = "Your question is too long. Please shorten it and try again."
	OutOfScopeMessage   = "I'm sorry, but that question is out of scope."
	ConnectivityMessage = "An error occurred while communicating with the online Model. Please, make sure you have active internet connection."
	DeviceReadMessage   = "I was unable to read the device status right now. Please try again in a moment."
	StreamFailedMessage = "An error occurred while streaming the message."
	UnknownErrorMessage = "Unknown Error"
)

// MaxInputLength is the longest accepted question, in characters.
const MaxInputLength = 500
