package service

import (
	"testing"

	"github.com/keyan-next/internal/constants"
)

func TestCategoryOf(t *testing.T) {
	cases := []struct {
		subtype string
		typ     string
		want    string
	}{
		{"纵向项目", "科研项目", constants.CategoryVerticalProject},
		{"横向项目", "科研项目", constants.CategoryHorizontalProject},
		{"学术论文", "学术成果", constants.CategoryPaper},
		{"发明专利", "学术成果", constants.CategoryPatent},
		{"国际专利", "学术成果", constants.CategoryPatent},
		{"出版著作", "学术成果", constants.CategoryPublication},
		{"教材编写", "学术成果", constants.CategoryOther},
		{"专著图书", "学术成果", constants.CategoryPublication},
		{"科技奖励", "学术成果", constants.CategoryAward},
		{"教学获奖", "学术成果", constants.CategoryAward},
		// 子类都未命中时回看大类名
		{"校级课题", "科研项目", constants.CategoryVerticalProject},
		{"其他成果", "学术成果", constants.CategoryOther},
		{"", "", constants.CategoryOther},
	}
	for _, tc := range cases {
		if got := CategoryOf(tc.subtype, tc.typ); got != tc.want {
			t.Fatalf("CategoryOf(%q, %q) = %q, want %q", tc.subtype, tc.typ, got, tc.want)
		}
	}
}

func TestCategoryOfKeywordOrder(t *testing.T) {
	// 同时命中多个关键字时按序先到先得
	if got := CategoryOf("纵向论文项目", "学术成果"); got != constants.CategoryVerticalProject {
		t.Fatalf("expected 纵向 to win, got %q", got)
	}
	if got := CategoryOf("论文获奖", "学术成果"); got != constants.CategoryPaper {
		t.Fatalf("expected 论文 to win, got %q", got)
	}
}
