// Package openai implements the OpenAI provider adapters.
//
// Two adapters share the chat completions endpoint:
//
//   - Provider streams a completion. The browser sends {model, messages}; the
//     adapter adds stream:true and stream_options.include_usage:true so the
//     final event reports token usage, and yields the decoded events through a
//     providers.StreamReader (providers.StrategyEvents).
//   - AnalyseProvider forwards the browser payload unchanged and returns the
//     complete JSON response. A connect timeout surfaces as a
//     providers.TimeoutError carrying AnalyseTimeoutMessage.
//
// # Basic Usage
//
//	provider := openai.NewProvider(providers.ProviderConfig{
//	    Name:   "openai",
//	    APIKey: cfg.Providers.OpenAI.SimulateurKey,
//	})
//	defer provider.Close()
//
//	call, err := provider.Open(ctx, body)
//	if err != nil {
//	    return err
//	}
//	defer call.Close()
//
//	for {
//	    chunk, err := call.Events.Read(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// # Stream Format
//
// OpenAI frames each event as "data: {json}" followed by a blank line and ends
// the stream with "data: [DONE]". The trailing usage event has an empty
// choices array; it is returned as a StreamChunk with an empty Delta and a
// non-nil Usage.
package openai
