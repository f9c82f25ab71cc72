/*Package interval implements the fixed-width genomic bin record consumed by
  the cMBF scorer, along with the line-level parsing used to read
  "chrom start end readCount" files.
  Positions are PosType, currently int32.
*/
package interval
