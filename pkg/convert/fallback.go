package convert

import (
	"fmt"
	"strings"

	"github.com/portmill/portmill/pkg/platform"
	"github.com/portmill/portmill/pkg/translate"
)

// fallbackContent builds the local conversion payload used when the
// capability is exhausted: a structured header naming the platform pair and
// failure, static manual-conversion guidance for the pair, and the original
// source verbatim.
func fallbackContent(source string, from, to platform.Platform, filename, reason string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "// CONVERSION ERROR: %s\n", reason)
	fmt.Fprintf(&b, "// Automatic %s to %s conversion was unavailable for this file.\n",
		from.DisplayName(), to.DisplayName())
	b.WriteString("// The original source is preserved below with manual conversion notes.\n\n")

	b.WriteString(guidance(from, to, translate.ClassifyKind(filename)))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "/*\n * ORIGINAL %s CODE:\n", strings.ToUpper(string(from)))
	b.WriteString(" * To complete the conversion:\n")
	b.WriteString(" * 1. Review the conversion notes above\n")
	b.WriteString(" * 2. Apply platform-specific changes manually\n")
	b.WriteString(" * 3. Test and adjust as needed\n */\n\n")

	b.WriteString(source)
	return b.String()
}

// guidance returns the static manual-conversion notes for a platform pair
// and file kind
func guidance(from, to platform.Platform, kind translate.Kind) string {
	markup := kind == translate.KindLayout || kind == translate.KindManifest || kind == translate.KindMarkup

	switch {
	case from == platform.AndroidJava && to == platform.IOSSwift && markup:
		return `/*
 * CONVERSION NOTES FOR ANDROID XML TO iOS SWIFT:
 * - Convert LinearLayout to VStack/HStack in SwiftUI
 * - Convert TextView to Text() in SwiftUI
 * - Convert Button to Button() in SwiftUI
 * - Convert EditText to TextField() in SwiftUI
 * - Replace android:layout_width/height with SwiftUI modifiers
 * - Convert android:onClick to SwiftUI actions
 */`
	case from == platform.AndroidJava && to == platform.IOSSwift:
		return `/*
 * CONVERSION NOTES FOR ANDROID JAVA TO iOS SWIFT:
 * - Convert classes to Swift classes/structs
 * - Replace findViewById with @IBOutlet or SwiftUI @State
 * - Convert setOnClickListener to SwiftUI actions
 * - Replace Intent with segues or NavigationView
 * - Convert AsyncTask to async/await or Combine
 * - Replace SharedPreferences with UserDefaults
 */`
	case from == platform.AndroidKotlin && to == platform.IOSSwift:
		return `/*
 * CONVERSION NOTES FOR ANDROID KOTLIN TO iOS SWIFT:
 * - Convert data classes to Swift structs
 * - Replace lateinit var with Swift optionals or lazy properties
 * - Convert coroutines to async/await
 * - Replace Kotlin extensions with Swift extensions
 * - Convert when expressions to switch statements
 */`
	case from == platform.IOSSwift && (to == platform.AndroidJava || to == platform.AndroidKotlin):
		return fmt.Sprintf(`/*
 * CONVERSION NOTES FOR iOS SWIFT TO %s:
 * - Convert SwiftUI views to Android layouts or Compose
 * - Replace UserDefaults with SharedPreferences
 * - Convert async/await to coroutines or executors
 * - Replace NavigationView with Intents or the navigation component
 * - Map viewDidLoad/viewWillAppear to onCreate/onResume
 */`, strings.ToUpper(string(to)))
	default:
		return fmt.Sprintf(`/*
 * CONVERSION NOTES FOR %s TO %s:
 * - Review platform-specific APIs and frameworks
 * - Update import statements and dependencies
 * - Adapt UI components to target platform conventions
 * - Adjust navigation and lifecycle patterns
 */`, strings.ToUpper(string(from)), strings.ToUpper(string(to)))
	}
}
