/*
Atomflow reads structure and sequence files, regroups and filters the
atoms in them and writes them out again, in the same or another format.
The format of a file is taken from its extension (.cif .mmcif .pdb .ent
.fasta .fa .faa, maybe followed by .gz for input). An input file with no
known extension is looked at to guess its format.

Usage:

	atomflow [--config file.toml] command [flags] args

The commands are:

	convert IN OUT
		Read IN and write OUT. Atoms go through the stages in the order
		sort, group-by, filter, exclude, collect.
		--sort key       order all atoms by key
		--group-by key   join neighbouring atoms with the same key value
		--filter k=a,b   keep groups with a member whose k is a or b
		--exclude k=a,b  drop groups with a member whose k is a or b
		--collect        put everything in one group
		--path-fmt k1,k2 fill the {} in OUT with k1, k2 of each group
	cif IN
		Print the CIF data in IN, as the writer sees it.
		--category _cat  only keep this category, may be repeated
	stat IN
		Print the number of atoms, centroid, radius of gyration and
		number of c alpha chain breaks.
		--group-by key   one line per group

Settings come from the file given with --config and from environment
variables such as ATOMFLOW_CIF_WIDTH and ATOMFLOW_LOG_DEST.
*/
package main
