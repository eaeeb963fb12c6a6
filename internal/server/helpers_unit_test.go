package server

import (
	"errors"
	"fmt"
	"testing"

	"matjip/apps/backend/internal/curator"
	"matjip/apps/backend/internal/recommend"
)

func TestFormErrorMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{curator.ErrNoFoodSelected, "음식 종류를 하나 이상 선택해주세요."},
		{curator.ErrNoTimeSelected, "방문 시간을 하나 이상 선택해주세요."},
		{fmt.Errorf("%w: %q", curator.ErrUnknownCategory, "피자"), "알 수 없는 음식 종류입니다."},
		{fmt.Errorf("%w: %q", curator.ErrUnknownTimeLabel, "1~2시"), "알 수 없는 방문 시간입니다."},
		{fmt.Errorf("parse: %w", recommend.ErrInvalidTimeRange), "알 수 없는 방문 시간입니다."},
		{errors.New("other"), "입력값을 확인해주세요."},
	}
	for _, tc := range cases {
		if got := formErrorMessage(tc.err); got != tc.want {
			t.Fatalf("formErrorMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestCurrentFormOptions(t *testing.T) {
	options := currentFormOptions()
	if len(options.Genders) != 2 {
		t.Fatalf("expected 2 genders, got %v", options.Genders)
	}
	if len(options.AgeGroups) != len(recommend.AgeGroups) || options.AgeGroups[0] != "20대" {
		t.Fatalf("unexpected age groups %v", options.AgeGroups)
	}
	if len(options.Times) != len(recommend.TimeWindowLabels) {
		t.Fatalf("unexpected times %v", options.Times)
	}
}

func TestContainsString(t *testing.T) {
	if !containsString([]string{"한식", "술"}, "술") {
		t.Fatalf("expected match")
	}
	if containsString(nil, "술") {
		t.Fatalf("expected nil slice not to match")
	}
}

func TestLoadTemplatesDefinesViews(t *testing.T) {
	tmpl := loadTemplates()
	for _, name := range []string{"login.tmpl", "input.tmpl", "result.tmpl", "header", "footer"} {
		if tmpl.Lookup(name) == nil {
			t.Fatalf("expected template %q", name)
		}
	}
}
