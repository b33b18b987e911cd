package fasta

// SetReadSize changes how much the lexer reads at a time.
func SetReadSize(i int) {
	if i < 1 {
		i = defaultReadSize
	}
	rdsize = i
}
