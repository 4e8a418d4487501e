// Package gradio talks to the Grounded-SAM Gradio backend.
//
// The backend exposes a single prediction entry point taking ten positional
// arguments:
//
//	[{image, mask}, text_prompt, task_type, inpaint_prompt,
//	 box_threshold, text_threshold, iou_threshold,
//	 inpaint_mode, scribble_mode, auth_key]
//
// Payload keeps these as named fields and Payload.Args is the only place the
// order is spelled out.
//
// A call goes through three HTTP requests:
//   - GET  <endpoint>/config       (Connect)
//   - POST <endpoint>/run/predict  (Predict)
//   - files are later fetched from <endpoint>/file=<name>
//
// Apps launched with their request queue enabled only serve predictions
// over the websocket queue; Connect refuses them with ErrQueueEnabled.
//
// Every failure is reported as *InvocationError with the backend's message.
package gradio
