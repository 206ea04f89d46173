// Package engine implements the agent runtime: the orchestration loop that
// drives a model through zero or more tool dispatch rounds until it produces
// a final answer.
//
// # State Machine
//
// Every Run walks the same states:
//
//	INIT → MODEL_TURN → (TOOL_DISPATCH → MODEL_TURN)* → DONE
//
// INIT copies the prior transcript and appends the user prompt. MODEL_TURN
// consults the model with the transcript and the registry's tool
// definitions. An answer without tool calls ends the run (DONE). Otherwise
// every requested call is dispatched in order, one tool message is appended
// per call, and the loop returns to MODEL_TURN.
//
// # Failure Handling
//
// Tool failures never abort a run. The registry returns them as
// core.ToolResult values which are written into the transcript so the model
// can explain or correct them.
//
// Three conditions do abort:
//   - the model returns an error or no final response
//   - the context is canceled between steps
//   - the iteration cap is reached
//
// On the iteration cap a synthetic assistant message is appended and Run
// returns both the outcome and core.ErrLoopLimitExceeded.
//
// # Usage
//
//	reg, _ := tool.NewRegistry(tools)
//	eng := engine.New(llm, reg, func(o *engine.Options) {
//	    o.MaxIterations = 6
//	    o.Instructions = "You are a courier support assistant."
//	})
//	outcome, err := eng.Run(ctx, priorTranscript, "Where is my package ABC123?")
//
// An Engine holds no per-run state and can serve concurrent runs.
package engine
