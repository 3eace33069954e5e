/*
Package config manages configuration parsing and validation for patchrc.

	            +-------------+
	            |   Config    |
	            | (Patches)   |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   YAML    |           |   HCL   |
	| Parser    |           | Parser  |
	+-----------+           +---------+

🎯 Purpose:
- Loads the patch definition file (.patchrc.yaml or .patchrc.hcl)
- Validates targets, rules, and the no-match policy
- Provides the config hash used by the lock file

🔄 Flow:
1. Reads configuration from file
2. Parses format-specific syntax
3. Validates configuration values
4. Hands the validated config to the patch operations

📝 Design Philosophy:
The config file is the only input to patchrc. Rules are literal pairs, never
patterns; order is meaningful, because each rule is applied to the output of
the previous one. The on_no_match policy is deliberately explicit so a run
can never silently degrade from "patched everything" to "patched nothing"
without the caller choosing that behavior.

🔍 Example:

	cfg, err := config.Load(ctx, ".patchrc.yaml")
	if err != nil {
		return err
	}
	for _, p := range cfg.Patches {
		fmt.Println(p.Target, len(p.Rules))
	}
*/
package config
