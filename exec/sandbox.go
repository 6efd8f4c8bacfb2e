package exec

// Transform is the optional sandbox adapter named in spec §2 item 5 and
// §9: a pre-exec hook that can rewrite a command's argv before it is
// handed to the OS. It mirrors mvdan-sh's interp.ExecHandlerFunc shape
// (interp/handler.go) — an opaque wrapper the executor calls
// unconditionally, with a no-op default.
type Transform func(argv []string) []string

func identityTransform(argv []string) []string { return argv }
