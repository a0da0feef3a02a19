package respond

import "regexp"

type maskRule struct {
	re   *regexp.Regexp
	repl string
}

// Applied in order. Webhook URLs embed their token in the path, DSNs carry
// the database password either in the userinfo or as password=.
var maskRules = []maskRule{
	{regexp.MustCompile(`(https://(?:discord|discordapp)\.com/api/webhooks/)[^\s"']+`), "${1}****"},
	{regexp.MustCompile(`(https://hooks\.slack\.com/services/)[^\s"']+`), "${1}****"},
	{regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`), "://$1:****@"},
	{regexp.MustCompile(`(?i)(password=)('[^']*'|[^\s&]+)`), "${1}****"},
}

// SanitizeError returns err's message with webhook tokens and database
// passwords masked, for log lines that may be shipped off-host.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, r := range maskRules {
		msg = r.re.ReplaceAllString(msg, r.repl)
	}
	return msg
}
