/*
Package patch orchestrates the apply and verify operations.

	+-----------+     +-----------+     +-----------+
	|  config   | --> |   plan    | --> |   write   |
	| (patches) |     | (replace) |     | (atomic)  |
	+-----------+     +-----------+     +-----------+
	                        |                 |
	                   policy check      lock update

🎯 Purpose:
- Resolves patch targets (literal paths or doublestar globs)
- Runs the text replacement engine per target
- Enforces the on_no_match policy before anything is written
- Writes results atomically and updates the lock file

🔄 Flow:
1. Plan: read every target, compute replacements and match counts
2. Policy: with on_no_match=error, any zero-match rule aborts the run
   before the first write
3. Write: backup (optional), atomic write, lock entry, per-file feedback
4. Report: the completion summary is printed unconditionally once the
   write step finishes, with matched/skipped counts alongside

The plan/write split is deliberate: a strict-policy failure must never
leave some targets patched and others not.
*/
package patch
