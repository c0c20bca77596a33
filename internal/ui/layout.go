package ui

// LayoutCompactWidth is the terminal width below which the wire name
// column is hidden.
const LayoutCompactWidth = 60
