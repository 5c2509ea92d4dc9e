package domain

const (
	RoleUser          = "user"
	RoleAgent         = "agent"
	RoleEmployeeAdmin = "employee_admin"
	RoleSuperAdmin    = "super_admin"
)

const (
	UserStatusActive    = "active"
	UserStatusBlocked   = "blocked"
	UserStatusSuspended = "suspended"
)

// Named wallet sub-balances. Every money movement targets exactly one of these.
const (
	BalanceMain     = "main"
	BalanceGame     = "game"
	BalanceIncome   = "income"
	BalancePurchase = "purchase"
	BalanceAgent    = "agent"
)

const (
	TxTypeDeposit            = "deposit"
	TxTypeWithdraw           = "withdraw"
	TxTypeAgentSell          = "agent_sell"
	TxTypeAddMoney           = "add_money"
	TxTypePlanPurchase       = "plan_purchase"
	TxTypeTaskReward         = "task_reward"
	TxTypeReferralCommission = "referral_commission"
	TxTypeRefund             = "refund"
)

const (
	TxStatusPending            = "pending"
	TxStatusPendingAgentAction = "pending_agent_action"
	TxStatusCompleted          = "completed"
	TxStatusFailed             = "failed"
)

// CommissionRatesBps are the per-level referral commission rates in basis
// points, level 1 (direct referrer) first: 2%, 1%, 1%, 0.5%, 0.5%.
var CommissionRatesBps = []int64{200, 100, 100, 50, 50}

// Admin-configurable setting keys.
const (
	SettingTaskCooldownSeconds = "task_cooldown_seconds"
	SettingWithdrawMinCents    = "withdraw_min_cents"
	SettingDepositMinCents     = "deposit_min_cents"
	SettingPlatformNotice      = "platform_notice"
)
