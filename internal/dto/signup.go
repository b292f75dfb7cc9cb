package dto

// SignupRequest is the approval-based registration form.
type SignupRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Grade string `json:"grade" binding:"required"`
}

// SignupForward is the payload relayed upstream. The duplicated alias keys
// match what the legacy signup form sent, so older backend deployments keep
// accepting requests.
type SignupForward struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Grade string `json:"grade"`

	UserName    string `json:"user_name"`
	Mail        string `json:"mail"`
	MailAddress string `json:"mail_address"`
	GradeName   string `json:"grade_name"`

	Kind        string `json:"kind"`
	RequestType string `json:"request_type"`
	SubmittedAt string `json:"submitted_at"`
}
