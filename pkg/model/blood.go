package model

import "strings"

// BloodTypes lists the ABO/Rh groups tracked by the stock ledger, in display order.
var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// NormalizeBloodType upper-cases and trims a blood type and reports whether it is known.
func NormalizeBloodType(bt string) (string, bool) {
	bt = strings.ToUpper(strings.TrimSpace(bt))
	bt = strings.ReplaceAll(bt, " ", "")
	bt = strings.Replace(bt, "POS", "+", 1)
	bt = strings.Replace(bt, "NEG", "-", 1)
	for _, known := range BloodTypes {
		if bt == known {
			return bt, true
		}
	}
	return bt, false
}
