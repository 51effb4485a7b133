package configmanager

import (
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// AddFlagsFromFields automatically adds flags to the command based on the
// configured field selectors. Field pointers that implement pflag.Value
// (TLSMode, SourceStrategy) register as typed flags whose Set writes
// straight into the config.
func (m *ConfigManager) AddFlagsFromFields(cmd *cobra.Command) {
	for _, selector := range m.fieldSelectors {
		m.addFlagFromField(cmd, selector)
	}
}

func (m *ConfigManager) addFlagFromField(
	cmd *cobra.Command,
	selector FieldSelector[v1alpha1.Deployment],
) {
	fieldPtr := selector.Selector(m.Config)
	if fieldPtr == nil {
		return
	}

	flagName := m.GenerateFlagName(fieldPtr)
	if flagName == "" || cmd.Flags().Lookup(flagName) != nil {
		return
	}

	registerFlag(cmd.Flags(), fieldPtr, flagName, GenerateShorthand(flagName), selector)
}

func registerFlag(
	flags *pflag.FlagSet,
	fieldPtr any,
	name string,
	shorthand string,
	selector FieldSelector[v1alpha1.Deployment],
) {
	switch ptr := fieldPtr.(type) {
	case pflag.Value:
		flags.VarP(ptr, name, shorthand, selector.Description)
	case *string:
		defaultValue, _ := selector.DefaultValue.(string)
		flags.StringVarP(ptr, name, shorthand, defaultValue, selector.Description)
	case *int32:
		defaultValue, _ := selector.DefaultValue.(int32)
		flags.Int32VarP(ptr, name, shorthand, defaultValue, selector.Description)
	case *bool:
		defaultValue, _ := selector.DefaultValue.(bool)
		flags.BoolVarP(ptr, name, shorthand, defaultValue, selector.Description)
	case *v1alpha1.Duration:
		flags.DurationVarP(&ptr.Duration, name, shorthand, durationDefault(selector.DefaultValue), selector.Description)
	}
}

func durationDefault(value any) time.Duration {
	switch v := value.(type) {
	case time.Duration:
		return v
	case v1alpha1.Duration:
		return v.Duration
	default:
		return 0
	}
}

// GenerateFlagName derives the flag name for a config field pointer. Most
// fields use the kebab-cased leaf name (Domain becomes domain, LocalPort
// becomes local-port); ambiguous leaves carry their parent section as a
// prefix (Spec.TLS.Mode becomes tls-mode, Spec.Server.Port becomes
// server-port). Returns "" when the pointer does not belong to the managed
// config.
func (m *ConfigManager) GenerateFlagName(fieldPtr any) string {
	path := m.findFieldPath(fieldPtr)
	if path == "" {
		return ""
	}

	if override, ok := flagNameOverrides[path]; ok {
		return override
	}

	parts := strings.Split(path, ".")

	return kebabCase(parts[len(parts)-1])
}

// flagNameOverrides maps config field paths whose leaf name alone would be
// ambiguous or unclear on the command line.
var flagNameOverrides = map[string]string{
	"Spec.TLS.Mode":                 "tls-mode",
	"Spec.TLS.CertFile":             "tls-cert-file",
	"Spec.TLS.KeyFile":              "tls-key-file",
	"Spec.Server.Source.Strategy":   "source-strategy",
	"Spec.Server.Source.Repository": "source-repository",
	"Spec.Server.Source.Ref":        "source-ref",
	"Spec.Server.Source.Image":      "source-image",
	"Spec.Server.Source.Platform":   "source-platform",
	"Spec.Server.Port":              "server-port",
	"Spec.Database.Image":           "database-image",
	"Spec.Database.Name":            "database-name",
	"Spec.Database.User":            "database-user",
	"Spec.Cache.Image":              "cache-image",
	"Spec.Proxy.Image":              "proxy-image",
	"Spec.Timeouts.Ready":           "ready-timeout",
	"Spec.Timeouts.Verify":          "verify-timeout",
}

// GenerateShorthand returns the single-letter shorthand for well-known
// flags, or "" for flags without one.
func GenerateShorthand(flagName string) string {
	shorthands := map[string]string{
		"domain":          "d",
		"email":           "e",
		"tls-mode":        "t",
		"source-strategy": "s",
		"config-dir":      "c",
	}

	return shorthands[flagName]
}

// findFieldPath resolves a field pointer back to its dotted path inside the
// managed config by comparing addresses. The field type is compared too:
// the first field of a struct shares its parent's address.
func (m *ConfigManager) findFieldPath(fieldPtr any) string {
	target := reflect.ValueOf(fieldPtr)
	if target.Kind() != reflect.Ptr || target.IsNil() {
		return ""
	}

	root := reflect.ValueOf(m.Config).Elem()

	return findFieldPathIn(root, target.Pointer(), target.Elem().Type(), nil)
}

func findFieldPathIn(structVal reflect.Value, ptr uintptr, fieldType reflect.Type, path []string) string {
	for i := range structVal.NumField() {
		field := structVal.Field(i)
		if !field.CanAddr() {
			continue
		}

		fieldPath := append(path, structVal.Type().Field(i).Name)

		if field.Addr().Pointer() == ptr && field.Type() == fieldType {
			return strings.Join(fieldPath, ".")
		}

		if field.Kind() == reflect.Struct {
			if result := findFieldPathIn(field, ptr, fieldType, fieldPath); result != "" {
				return result
			}
		}
	}

	return ""
}

// kebabCase converts a Go field name to its flag spelling, keeping acronym
// runs intact (HTTPPort becomes http-port).
func kebabCase(name string) string {
	var builder strings.Builder

	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			boundary := i > 0 &&
				(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1])))
			if boundary {
				builder.WriteByte('-')
			}

			builder.WriteRune(unicode.ToLower(r))
		} else {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}
