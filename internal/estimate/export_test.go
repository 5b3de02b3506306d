package estimate

// Classify exposes classify for boundary tests.
var Classify = classify
