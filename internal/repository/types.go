package repository

// MembershipEventListFilter 成员事件分页查询条件
type MembershipEventListFilter struct {
	Page     int
	PageSize int
	TeamID   uint
	UserID   uint
	OnlyOpen bool
}
