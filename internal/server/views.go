package server

import (
	"embed"
	"html/template"

	"matjip/apps/backend/internal/curator"
	"matjip/apps/backend/internal/recommend"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var genderOptions = []string{"남성", "여성"}

func loadTemplates() *template.Template {
	return template.Must(
		template.New("").
			Funcs(template.FuncMap{
				"contains": containsString,
			}).
			ParseFS(templateFS, "templates/*.tmpl"),
	)
}

// formOptions is the option set offered by the input screen and the options
// endpoint.
type formOptions struct {
	Genders   []string `json:"genders"`
	AgeGroups []string `json:"age_groups"`
	Foods     []string `json:"foods"`
	Times     []string `json:"times"`
}

func currentFormOptions() formOptions {
	ageGroups := make([]string, len(recommend.AgeGroups))
	for i, group := range recommend.AgeGroups {
		ageGroups[i] = string(group)
	}
	return formOptions{
		Genders:   genderOptions,
		AgeGroups: ageGroups,
		Foods:     curator.FoodCategories,
		Times:     recommend.TimeWindowLabels,
	}
}

type inputView struct {
	AppName string
	User    string
	Options formOptions
	Form    curator.Form
	Error   string
}

type resultView struct {
	AppName string
	User    string
	Result  curator.Result
	Failed  bool
}

type loginView struct {
	AppName  string
	Username string
	Error    string
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
