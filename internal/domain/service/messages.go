package service

import "strconv"

// Messages holds the fragments a decision message is composed from. The
// wording is kept byte-for-byte compatible with existing consumers, so only
// override it when every consumer agrees.
type Messages struct {
	Approved        string
	Rejected        string
	DebtNotice      string
	SuggestedAmount string
	SuggestedPeriod string
	Conjunction     string
}

// DefaultMessages returns the stock message fragments.
func DefaultMessages() Messages {
	return Messages{
		Approved:        "Your Loan request has been APPROVED.",
		Rejected:        "Requested loan request has been REJECTED.",
		DebtNotice:      "user is having Debt. ",
		SuggestedAmount: "Bank suggests new amount ",
		SuggestedPeriod: "Bank suggest new loan period : ",
		Conjunction:     " and ",
	}
}

func (m Messages) approved() string { return m.Approved }

func (m Messages) rejected() string { return m.Rejected }

func (m Messages) rejectedForDebt() string { return m.DebtNotice + m.Rejected }

func (m Messages) counterAmount() string { return m.Rejected + m.SuggestedAmount }

func (m Messages) counterPeriod(period int) string {
	return m.Rejected + m.SuggestedPeriod + strconv.Itoa(period)
}

func (m Messages) counterAmountAndPeriod(period int) string {
	return m.Rejected + m.SuggestedAmount + m.Conjunction + m.SuggestedPeriod + strconv.Itoa(period)
}
