// Package builtins holds the fixed, process-wide tables of GN builtin
// function names, target-type names, predefined variables, target
// variables, and keyword literals — loaded once per process rather than
// rebuilt per analysis.
//
// The original google/gn-language-server's BUILTINS table was filtered out
// of the retrieval pack; this table is reconstructed from GN's public
// language reference rather than derived from that source (see
// DESIGN.md).
package builtins

// Names of the handful of builtins the analyzer classifies statements by.
// Kept as named constants (rather than inline string literals scattered
// through the analyzer) the way the original's common::builtins module
// exposes DECLARE_ARGS/FOREACH/FORWARD_VARIABLES_FROM/IMPORT/TEMPLATE/
// SET_DEFAULTS.
const (
	DeclareArgs         = "declare_args"
	Foreach              = "foreach"
	ForwardVariablesFrom = "forward_variables_from"
	Import               = "import"
	Template             = "template"
	SetDefaults          = "set_defaults"
)

// Functions are GN's non-target builtin calls.
var Functions = []string{
	"assert",
	"config",
	"declare_args",
	"defined",
	"exec_script",
	"filter_exclude",
	"filter_include",
	"foreach",
	"forward_variables_from",
	"get_label_info",
	"get_path_info",
	"get_target_outputs",
	"getenv",
	"import",
	"pool",
	"print",
	"process_file_template",
	"read_file",
	"rebase_path",
	"set_default_toolchain",
	"set_defaults",
	"split_list",
	"string_join",
	"string_replace",
	"string_split",
	"template",
	"toolchain",
	"write_file",
}

// TargetTypes are the builtin functions that declare a build target.
var TargetTypes = []string{
	"action",
	"action_foreach",
	"bundle_data",
	"copy",
	"create_bundle",
	"executable",
	"generated_file",
	"group",
	"loadable_module",
	"rust_library",
	"rust_proc_macro",
	"shared_library",
	"source_set",
	"static_library",
}

// PredefinedVariables are variables GN defines in every scope.
var PredefinedVariables = []string{
	"current_cpu",
	"current_os",
	"current_toolchain",
	"default_toolchain",
	"host_cpu",
	"host_os",
	"invoker",
	"python_path",
	"root_build_dir",
	"root_gen_dir",
	"root_out_dir",
	"target_cpu",
	"target_gen_dir",
	"target_name",
	"target_os",
	"target_out_dir",
}

// TargetVariables are variables meaningful inside a target's body block.
var TargetVariables = []string{
	"all_dependent_configs",
	"cflags",
	"cflags_c",
	"cflags_cc",
	"cflags_objc",
	"cflags_objcc",
	"configs",
	"data",
	"data_deps",
	"defines",
	"deps",
	"include_dirs",
	"inputs",
	"ldflags",
	"lib_dirs",
	"libs",
	"output_name",
	"outputs",
	"public",
	"public_configs",
	"public_deps",
	"sources",
	"testonly",
	"visibility",
}

// Keywords are literal keyword identifiers, distinct from variables.
var Keywords = []string{"true", "false"}

// All returns every fixed identifier recognized without a definition:
// functions, target types, predefined variables, target variables, and
// keywords. Used to seed the undefined-identifier tracker.
func All() []string {
	all := make([]string, 0, len(Functions)+len(TargetTypes)+len(PredefinedVariables)+len(TargetVariables)+len(Keywords))
	all = append(all, Functions...)
	all = append(all, TargetTypes...)
	all = append(all, PredefinedVariables...)
	all = append(all, TargetVariables...)
	all = append(all, Keywords...)
	return all
}

var isTargetType = indexOf(TargetTypes)
var isFunction = indexOf(Functions)

func indexOf(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// IsTargetType reports whether name is a builtin target-declaring function.
func IsTargetType(name string) bool { return isTargetType[name] }

// IsFunction reports whether name is a builtin non-target function.
func IsFunction(name string) bool { return isFunction[name] }
