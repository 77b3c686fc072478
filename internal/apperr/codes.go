package apperr

// Code 稳定的业务错误码
// 1xxx 用户, 2xxx 任务, 3xxx 作业, 4xxx 审核, 5xxx 奖励, 6xxx 通知, 9xxx 系统
type Code int

const (
	CodeOK Code = 0

	CodeUserNotFound       Code = 1001
	CodeUserAlreadyExists  Code = 1002
	CodeInvalidCredentials Code = 1004
	CodeInvalidToken       Code = 1005
	CodeTokenExpired       Code = 1006
	CodePermissionDenied   Code = 1007
	CodeWeakPassword       Code = 1010

	CodeTaskNotFound         Code = 2001
	CodeTaskNotAvailable     Code = 2003
	CodeTaskAlreadyAssigned  Code = 2004
	CodeTaskPermissionDenied Code = 2005
	CodeInvalidTaskStatus    Code = 2006
	CodeCannotAcceptOwnTask  Code = 2007
	CodeInvalidTaskData      Code = 2008

	CodeAssignmentNotFound         Code = 3001
	CodeAssignmentAlreadyExists    Code = 3002
	CodeAssignmentPermissionDenied Code = 3003
	CodeInvalidAssignmentStatus    Code = 3004

	CodeReviewNotFound         Code = 4001
	CodeReviewAlreadyExists    Code = 4002
	CodeReviewPermissionDenied Code = 4003
	CodeInvalidReviewResult    Code = 4004
	CodeCannotReviewOwnTask    Code = 4005
	CodeReviewAlreadyCompleted Code = 4006
	CodeAppealNotAllowed       Code = 4007

	CodeRewardNotFound         Code = 5001
	CodeRewardPermissionDenied Code = 5003
	CodeInvalidRewardAmount    Code = 5004
	CodeInvalidRewardStatus    Code = 5007

	CodeNotificationNotFound         Code = 6001
	CodeNotificationPermissionDenied Code = 6002

	CodeInternal         Code = 9001
	CodeDatabase         Code = 9002
	CodeValidation       Code = 9003
	CodeInvalidParameter Code = 9004
	CodeOperationFailed  Code = 9006
	CodeTimeout          Code = 9009
)
