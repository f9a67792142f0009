package registration

import (
	"reflect"
	"strings"

	"github.com/volatiletech/null/v8"
)

// FieldCategory classifies a step-2 form field for payload shaping.
type FieldCategory string

const (
	FieldSchool     FieldCategory = "school"
	FieldEnrollment FieldCategory = "enrollment"
)

// fieldCategories is the classification table for every SchoolForm field.
// A test asserts it stays in lockstep with the form schema, so adding a form
// field without classifying it here fails the build's test run.
var fieldCategories = map[string]FieldCategory{
	"schoolName":      FieldSchool,
	"schoolAddress":   FieldSchool,
	"schoolLga":       FieldSchool,
	"category":        FieldSchool,
	"yearEstablished": FieldSchool,

	"prePrimaryMale":   FieldEnrollment,
	"prePrimaryFemale": FieldEnrollment,
	"primaryMale":      FieldEnrollment,
	"primaryFemale":    FieldEnrollment,
	"jssMale":          FieldEnrollment,
	"jssFemale":        FieldEnrollment,
	"sssMale":          FieldEnrollment,
	"sssFemale":        FieldEnrollment,
}

// FieldCategories returns a copy of the classification table.
func FieldCategories() map[string]FieldCategory {
	cp := make(map[string]FieldCategory, len(fieldCategories))
	for k, v := range fieldCategories {
		cp[k] = v
	}
	return cp
}

// Partition splits the form into its school-particulars partition and the
// enrollment map. Only set counts make it into the map; zero counts are
// included, unset ones are not.
func (sf SchoolForm) Partition() (SchoolInfo, Enrollment) {
	info := SchoolInfo{
		SchoolName:      sf.SchoolName,
		SchoolAddress:   sf.SchoolAddress,
		SchoolLGA:       sf.SchoolLGA,
		Category:        sf.Category,
		YearEstablished: sf.YearEstablished,
	}

	enrollment := make(Enrollment)
	v := reflect.ValueOf(sf)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := jsonFieldName(t.Field(i))
		if fieldCategories[name] != FieldEnrollment {
			continue
		}
		count, ok := v.Field(i).Interface().(null.Int)
		if ok && count.Valid {
			enrollment[name] = int(count.Int)
		}
	}
	if len(enrollment) == 0 {
		enrollment = nil
	}
	return info, enrollment
}

func jsonFieldName(fld reflect.StructField) string {
	return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
}
