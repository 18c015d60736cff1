package models

// Department 院系表（规范单位）
type Department struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
}

// TableName 指定表名
func (Department) TableName() string {
	return "departments"
}

// DepartmentAlias 院系别名表
// 别名唯一，目标编码允许指向不存在的院系行（只读归一化用）。
type DepartmentAlias struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Alias string `gorm:"type:varchar(255);uniqueIndex;not null" json:"alias"`
	Code  string `gorm:"type:varchar(50);index;not null" json:"code"`
}

// TableName 指定表名
func (DepartmentAlias) TableName() string {
	return "department_aliases"
}
