package reminder

import (
	"fmt"

	"github.com/garyjia/ar-reminder/internal/invoice"
)

// ToneKey names the severity of a reminder
type ToneKey string

const (
	ToneCriticallyOverdue ToneKey = "CRITICALLY_OVERDUE"
	ToneExtremelyOverdue  ToneKey = "EXTREMELY_OVERDUE"
	ToneLongOverdue       ToneKey = "LONG_OVERDUE"
	ToneOverdue           ToneKey = "OVERDUE"
	ToneCurrent           ToneKey = "CURRENT"
)

// Tone is the wording of one reminder severity
type Tone struct {
	Key            ToneKey
	Salutation     string
	Introduction   string
	ClosingRequest string
	Signature      string
}

// Greeting addresses the customer by name
func (t Tone) Greeting(customer string) string {
	return fmt.Sprintf("%s %s,", t.Salutation, customer)
}

var tones = map[ToneKey]Tone{
	ToneCriticallyOverdue: {
		Key:            ToneCriticallyOverdue,
		Salutation:     "Dear",
		Introduction:   "This is an urgent and final reminder regarding your account. Several invoices are critically past due and require your immediate attention.",
		ClosingRequest: "IMMEDIATE ACTION REQUIRED: Please settle the overdue balance or reply to this email so we can arrange payment. If no response is given, we may have to proceed with further collection measures without additional notice.",
		Signature:      "Urgently,\nAccounts Receivable Department",
	},
	ToneExtremelyOverdue: {
		Key:            ToneExtremelyOverdue,
		Salutation:     "Dear",
		Introduction:   "We are reaching out regarding invoices on your account that are now extremely overdue and must be addressed without delay.",
		ClosingRequest: "These invoices require immediate resolution. Please make payment promptly or reply to this email so we can discuss your account and prevent further action. If no response is given, we may have to proceed with further collection measures.",
		Signature:      "Sincerely,\nAccounts Receivable Department",
	},
	ToneLongOverdue: {
		Key:            ToneLongOverdue,
		Salutation:     "Dear",
		Introduction:   "We are contacting you about invoices on your account that have remained unpaid for an extended period. Your prompt attention to this matter is necessary.",
		ClosingRequest: "Please arrange payment for the overdue balance as soon as possible. If you are experiencing difficulties or need options, simply reply to this email so we can work out a solution together.",
		Signature:      "Respectfully,\nAccounts Receivable Department",
	},
	ToneOverdue: {
		Key:            ToneOverdue,
		Salutation:     "Dear",
		Introduction:   "We hope you are doing well. This is a courteous reminder that invoices on your account remain unpaid beyond their due date.",
		ClosingRequest: "We kindly ask that you send payment for the outstanding balance at your earliest convenience. If you have any questions or need assistance, just reply to this email and I'll be glad to help.",
		Signature:      "Best regards,\nAccounts Receivable Department",
	},
	ToneCurrent: {
		Key:            ToneCurrent,
		Salutation:     "Hello",
		Introduction:   "We hope this message finds you well. New invoices have been issued to your account for your review.",
		ClosingRequest: "These invoices are not yet due, and payment is kindly requested by the dates shown above. If you have any questions or need clarification, simply reply to this email and we will be happy to assist.",
		Signature:      "Warm regards,\nAccounts Receivable Department",
	},
}

// severityLevel is one overdue bucket in reminder wording
type severityLevel struct {
	bucket   invoice.Bucket
	tone     ToneKey
	label    string
	category string
}

// severity lists the overdue buckets oldest first
var severity = []severityLevel{
	{bucket: invoice.Bucket90Plus, tone: ToneCriticallyOverdue, label: "CRITICALLY OVERDUE INVOICES", category: "Critically Overdue invoices"},
	{bucket: invoice.Bucket61To90, tone: ToneExtremelyOverdue, label: "EXTREMELY OVERDUE INVOICES", category: "Extremely Overdue invoices"},
	{bucket: invoice.Bucket31To60, tone: ToneLongOverdue, label: "LONG OVERDUE INVOICES", category: "Long Overdue invoices"},
	{bucket: invoice.Bucket1To30, tone: ToneOverdue, label: "OVERDUE INVOICES", category: "Overdue invoices"},
}

const currentLabel = "CURRENT INVOICES"

// highestSeverity describes the most overdue non-empty bucket of c
func highestSeverity(c invoice.Categorized) (severityLevel, bool) {
	bucket, ok := c.HighestOverdueBucket()
	if !ok {
		return severityLevel{}, false
	}
	for _, s := range severity {
		if s.bucket == bucket {
			return s, true
		}
	}
	return severityLevel{}, false
}

// ToneFor picks the tone of the most overdue non-empty bucket
func ToneFor(c invoice.Categorized) Tone {
	if s, ok := highestSeverity(c); ok {
		return tones[s.tone]
	}
	return tones[ToneCurrent]
}

// HighestOverdueCategory names the most overdue category for the subject line
func HighestOverdueCategory(c invoice.Categorized) string {
	if s, ok := highestSeverity(c); ok {
		return s.category
	}
	return "Overdue invoices"
}
