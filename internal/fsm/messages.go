package fsm

// Console text. The wording is part of the console protocol.
const (
	msgBanner = "\n----------------------Fancy Timer Project-----------------------\n\r" +
		"The Current State of the FSM is: WAITING. LED2 should be pulsing\n" +
		"To move forward, please press PB1 to begin setting a countdown time.\n"
	msgWaitingPrompt = "\n\r[WAITING] Press PB1 to begin setting a countdown time.\n\r"
	msgPB1Detected   = "\n\r[WAITING] PB1 press detected, moving to TIME_ENTRY.\n\r"

	msgEntryPrompt = "\n\r[TIME ENTRY] Please enter time as MMSS (e.g., 0130 for 1min 30s), then press ENTER:\n\r> "
	msgTimeSet     = "\n\r[TIME ENTRY] Time set.\n\r" +
		"[TIME ENTRY] Click PB2 and PB3 together to start.\n\r" +
		"[TIME ENTRY] Long press PB2+PB3 to reset and re-enter time.\n\r"
	msgComboReset = "\n\r[TIME ENTRY] Long press PB2+PB3 detected. Resetting time.\n\r"
	msgStarting   = "\n\r[TIME ENTRY] Starting countdown.\n\r"

	msgCountdownHelp = "\n\r[COUNTDOWN] Countdown started.\n\r" +
		"[COUNTDOWN] Click PB3 to pause/resume. Long press PB3 to abort.\n\r" +
		"[COUNTDOWN] Type 'i' to toggle extra info, 'b' to toggle LED2 blink/solid.\n\r"
	msgAbort     = "\n\r[COUNTDOWN] Long press PB3 detected. Aborting timer to 00:00.\n\r"
	msgPaused    = "\n\r[COUNTDOWN] Paused.\n\r"
	msgResumed   = "\n\r[COUNTDOWN] Resumed.\n\r"
	msgBlinkMode = "\n\r[COUNTDOWN] LED2 set to BLINK mode.\n\r"
	msgSolidMode = "\n\r[COUNTDOWN] LED2 set to SOLID mode.\n\r"

	msgExtendedHeader = "\n\rTime remaining (extended): "
	msgTimeRemaining  = "\n\rTime remaining: "

	msgDone = "\n\r[DONE] Countdown complete! Timer reached 00:00.\n\r"
)
