package service

import "errors"

var (
	// ErrLedgerLoadFailed 账本快照加载失败
	ErrLedgerLoadFailed = errors.New("账本数据加载失败")
	// ErrLedgerSourceMissing 未配置账本数据来源
	ErrLedgerSourceMissing = errors.New("账本数据来源未配置")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("用户不存在")
	// ErrTeamNotFound 团队不存在
	ErrTeamNotFound = errors.New("团队不存在")
	// ErrReconcileInProgress 已有对账正在执行
	ErrReconcileInProgress = errors.New("对账正在执行中")
	// ErrInvalidLimit 排行数量非法
	ErrInvalidLimit = errors.New("排行数量非法")
)
