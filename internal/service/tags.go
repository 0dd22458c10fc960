package service

// Callback tag namespace shared between the prompts this service sends and
// the dispatcher that routes button presses back.
const (
	TagAnswerPrefix = "ans:"  // ans:<key>:<value> — fixed-choice form answer
	TagEditPrefix   = "edit:" // edit:<key> — revise one answer from review
	TagConfirm      = "confirm"
	TagEvalPrefix   = "eval:" // eval:<actorID> — admin picked a pending candidate
	TagPosPrefix    = "pos:"  // pos:<value> — position after approval
	TagDatePrefix   = "date:" // date:<iso> — computed course date
	TagDateCustom   = "date:custom"
	TagPreCourseYes = "precourse:yes"
	TagPreCourseNo  = "precourse:no"
	TagNoReschedule = "noopt:reschedule"
	TagNoDecline    = "noopt:decline"
	TagAltAccept    = "alt:accept"
	TagAltDecline   = "alt:decline"
)
