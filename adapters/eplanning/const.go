package eplanning

const protocolRelative = "//"
const pathSeparator = "/"
const hbPath = "hb"
const spaceSeparator = "+"
const spaceSizesSeparator = ":"
const sizeSeparator = ","
const sizeDimensionSeparator = "x"
