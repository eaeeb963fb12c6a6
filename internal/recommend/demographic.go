package recommend

import (
	"fmt"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// ParseGender accepts the form labels (남성, 여성) or the codes (M, F).
// Anything that is not male maps to female.
func ParseGender(input string) Gender {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "M", "MALE", "남성":
		return GenderMale
	default:
		return GenderFemale
	}
}

// Label returns the Korean form label for the gender.
func (g Gender) Label() string {
	if g == GenderMale {
		return "남성"
	}
	return "여성"
}

type AgeGroup string

const (
	AgeGroup20s     AgeGroup = "20대"
	AgeGroup30s     AgeGroup = "30대"
	AgeGroup40s     AgeGroup = "40대"
	AgeGroup50s     AgeGroup = "50대"
	AgeGroup60sPlus AgeGroup = "60대 이상"
)

// AgeGroups lists the selectable age buckets in display order.
var AgeGroups = []AgeGroup{AgeGroup20s, AgeGroup30s, AgeGroup40s, AgeGroup50s, AgeGroup60sPlus}

var ageCodes = map[AgeGroup]string{
	AgeGroup20s:     "2",
	AgeGroup30s:     "3",
	AgeGroup40s:     "4",
	AgeGroup50s:     "5",
	AgeGroup60sPlus: "6",
}

// Code returns the single-digit table code. Unknown groups use the 20s code.
func (a AgeGroup) Code() string {
	if code, ok := ageCodes[AgeGroup(strings.TrimSpace(string(a)))]; ok {
		return code
	}
	return ageCodes[AgeGroup20s]
}

// Valid reports whether a is one of AgeGroups.
func (a AgeGroup) Valid() bool {
	_, ok := ageCodes[a]
	return ok
}

// Key builds the composite lookup key for one table cell.
func Key(ageCode string, gender Gender, day, hour int) string {
	return fmt.Sprintf("%s_%s_%d_%d", ageCode, gender, day, hour)
}
