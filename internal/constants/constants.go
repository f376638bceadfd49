package constants

// 工单（客户）状态常量
const (
	JobStatusFinalized          = "Finalized"
	JobStatusLostReclaimable    = "Lost - Reclaimable"
	JobStatusLostUnreclaimable  = "Lost - Unreclaimable"
	JobStatusLead               = "Lead"
	JobStatusInspection         = "Inspection"
	JobStatusClaimFiled         = "Claim Filed"
	JobStatusApproved           = "Approved"
	JobStatusInProduction       = "In Production"
	JobStatusSupplementing      = "Supplementing"
	JobStatusAwaitingFinalCheck = "Awaiting Final Check"
)

// 工单生命周期分类常量
const (
	JobLifecycleActive    = "active"
	JobLifecycleFinalized = "finalized"
	JobLifecycleLost      = "lost"
)

// 用户角色常量
const (
	UserRoleSalesman          = "Salesman"
	UserRoleSalesManager      = "Sales Manager"
	UserRoleSupplementer      = "Supplementer"
	UserRoleSupplementManager = "Supplement Manager"
	UserRoleAffiliate         = "Affiliate"
	UserRoleAdmin             = "Admin"
)

// 团队类型常量
const (
	TeamTypeSales      = "Sales"
	TeamTypeSupplement = "Supplement"
	TeamTypeAffiliate  = "Affiliate"
)

// 业绩指标单位常量
const (
	MetricUnitCurrency = "currency"
	MetricUnitPercent  = "percent"
)

// 业绩指标类型常量
const (
	MetricKindAverageMargin  = "average_margin"
	MetricKindConversionRate = "conversion_rate"
)

// 账本数据来源常量
const (
	LedgerSourceRemote   = "remote"
	LedgerSourceDatabase = "database"
)

// 对账降级原因常量
const (
	DegradeReasonCalculatorMissing = "calculator_missing"
	DegradeReasonCallFailed        = "call_failed"
	DegradeReasonCallTimeout       = "call_timeout"
)

// 孤立记录类型常量
const (
	OrphanKindCommissionUser = "commission_user"
	OrphanKindCommissionJob  = "commission_job"
	OrphanKindPaymentUser    = "payment_user"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskReconcileRun = "reconcile:run"
)
