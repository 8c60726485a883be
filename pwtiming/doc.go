/*
Package pwtiming recovers a password from the time it takes a server to reject wrong guesses.

The victim compares passwords the naive way: first the lengths, then character by character,
stopping at the first difference. A guess of the right length therefore takes a little longer
to reject than a guess of the wrong length, and a guess with more correct leading characters
takes longer than one with fewer. The Engine exploits this in two phases, InferLength and
InferContent, timing the Oracle through a Sampler.

The real oracle (PasswordDB) differs by a few nanoseconds per character, so each sample runs
the comparison many times and keeps the fastest of several trials. SimulatedOracle replaces
the real cost with a synthetic cost model on a virtual clock, which is how the tests get
deterministic timings.

Example config file:

	{
		"Alphabet": "abcdefghijklmnopqrstuvwxyz ",		-- Characters tried at every position, in order
		"Comparison": "early-exit",						-- or "constant-time"
		"Passwords": {"james": "ammagamma"},			-- Omit to use the built-in demo accounts
		"MaxLength": 32,
		"InnerIterations": 1000,
		"OuterTrials": 10,
		"MaxIterations": 0,								-- 0 = search until the password is found
		"MaxDurationSeconds": 0,
		"TopCandidates": 5,
		"VerboseLength": true,
		"VerboseContent": true,
		"LogFile": "pwtiming.log",						-- Relative to the location of pwtiming.json, or an absolute path
		"AuditEnabled": false
	}
*/
package pwtiming
