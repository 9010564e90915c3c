// Package tui implements the full-screen terminal interface of Kisan.
//
// The interface is a Bubble Tea program. AppModel coordinates the screens and
// owns the shell around them: the header (app title, subtitle, language and
// short user id), the sidebar and the help footer. Every screen renders its
// content only and is wrapped by RenderApplicationContainer.
//
// # Screens
//
// Which screen is shown follows the application state in internal/store and
// is resolved with internal/router:
//
//   - Splash while the app initializes
//   - Onboarding until the walkthrough is completed: language, three feature
//     pages, notification and location permissions, farming type and crops
//   - Home, the assistant chat (/voice-input), crop health, market prices,
//     crop calendar, government schemes and crop selection afterwards
//   - Community and profile, which only show a placeholder
//
// # Concurrency
//
// Update runs on the Bubble Tea goroutine. Initialization, assistant calls,
// speech recognition and permission requests run inside tea.Cmd functions
// and report back with messages. The store notifies subscribers
// synchronously from whichever goroutine mutated it, so Run forwards each
// notification to the program with a separate goroutine calling Program.Send.
//
// # Usage
//
//	app := tui.NewAppModel(ctx, tui.Deps{Store: st, Assistant: a, Platform: sys})
//	if err := tui.Run(ctx, app); err != nil {
//	    return err
//	}
package tui
