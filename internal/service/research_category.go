package service

import (
	"strings"

	"github.com/keyan-next/internal/constants"
)

// CategoryOf 按子类名称关键字归入统计口径
// 关键字按序匹配，先命中先得；子类名都未命中时回看大类名。
func CategoryOf(subtypeName, typeName string) string {
	switch {
	case strings.Contains(subtypeName, "纵向"):
		return constants.CategoryVerticalProject
	case strings.Contains(subtypeName, "横向"):
		return constants.CategoryHorizontalProject
	case strings.Contains(subtypeName, "论文"):
		return constants.CategoryPaper
	case strings.Contains(subtypeName, "专利"), strings.Contains(subtypeName, "发明"):
		return constants.CategoryPatent
	case strings.Contains(subtypeName, "出版"), strings.Contains(subtypeName, "著作"), strings.Contains(subtypeName, "书"):
		return constants.CategoryPublication
	case strings.Contains(subtypeName, "奖励"), strings.Contains(subtypeName, "获奖"):
		return constants.CategoryAward
	}
	if strings.Contains(typeName, "项目") {
		return constants.CategoryVerticalProject
	}
	return constants.CategoryOther
}
