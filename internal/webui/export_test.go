package webui

// StatusFor exposes the error mapping to external tests.
var StatusFor = statusFor
