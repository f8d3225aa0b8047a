package common

const PROJECTOR_VERSION = "0.2.0"
