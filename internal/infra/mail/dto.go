package mail

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type EnrollmentEmailData struct {
	AcademyName string
	LeadName    string
}
